package catalog

import (
	"embed"

	"github.com/vicedu/vicedu/modules/catalog/handlers"
	"github.com/vicedu/vicedu/modules/catalog/infrastructure/persistence"
	"github.com/vicedu/vicedu/modules/catalog/presentation/controllers"
	"github.com/vicedu/vicedu/modules/catalog/services"
	"github.com/vicedu/vicedu/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(migrationFiles, "infrastructure/persistence/schema")

	courseRepo := persistence.NewCourseRepository()
	lessonRepo := persistence.NewLessonRepository()
	auditRepo := persistence.NewAuditRepository()

	app.RegisterServices(
		services.NewCourseService(courseRepo, app.EventBus()),
		services.NewLessonService(lessonRepo, courseRepo, app.EventBus()),
		services.NewGovernanceService(auditRepo, app.EventBus(), courseRepo, lessonRepo),
		services.NewPublishService(courseRepo, app.EventBus()),
	)

	app.RegisterControllers(
		controllers.NewCourseAPIController(app),
		controllers.NewLessonAPIController(app),
		controllers.NewGovernanceAPIController(app),
	)

	handlers.RegisterAuditLogHandler(app)

	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
