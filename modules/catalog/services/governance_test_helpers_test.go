package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/eventbus"
	"github.com/vicedu/vicedu/pkg/itf"
)

func testBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

func courseFixture(store *itf.EntityStore, owner uuid.UUID, title string, published bool) *governance.Entity {
	e := &governance.Entity{
		Kind:        governance.TargetCourse,
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       title,
		IsPublished: published,
		Fields: map[string]any{
			"title":        title,
			"description":  "about " + title,
			"price":        "49.90",
			"thumbnail_id": nil,
			"category_id":  nil,
			"teacher_id":   owner.String(),
			"is_published": published,
		},
	}
	store.Put(e)
	return e
}

func lessonFixture(store *itf.EntityStore, owner uuid.UUID, title string) *governance.Entity {
	e := &governance.Entity{
		Kind:    governance.TargetLesson,
		ID:      uuid.New(),
		OwnerID: owner,
		Title:   title,
		Fields: map[string]any{
			"title":        title,
			"description":  "",
			"video_id":     nil,
			"position":     1,
			"is_published": false,
		},
	}
	store.Put(e)
	return e
}
