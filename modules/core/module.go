package core

import (
	"embed"

	"github.com/vicedu/vicedu/modules/core/infrastructure/persistence"
	"github.com/vicedu/vicedu/modules/core/services"
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

	app.RegisterServices(
		services.NewUserService(persistence.NewUserRepository()),
	)

	return nil
}

func (m *Module) Name() string {
	return "core"
}
