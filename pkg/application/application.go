package application

import (
	"fmt"
	"io/fs"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vicedu/vicedu/pkg/eventbus"
)

// Controller registers a set of routes under its own prefix.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module wires services, controllers and schema migrations into the app.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	Logger() *logrus.Logger
	EventBus() eventbus.EventBus

	RegisterServices(services ...any)
	// Service returns the registered service whose type matches the argument's
	// type. Panics when the service was never registered.
	Service(service any) any

	RegisterControllers(controllers ...Controller)
	Controllers() []Controller

	Migrations() *MigrationRegistry
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:       opts.Pool,
		eventBus:   opts.EventBus,
		logger:     opts.Logger,
		services:   map[reflect.Type]any{},
		migrations: &MigrationRegistry{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	services    map[reflect.Type]any
	controllers []Controller
	migrations  *MigrationRegistry
}

func (a *application) Pool() *pgxpool.Pool        { return a.pool }
func (a *application) Logger() *logrus.Logger     { return a.logger }
func (a *application) EventBus() eventbus.EventBus { return a.eventBus }

func (a *application) RegisterServices(services ...any) {
	for _, svc := range services {
		t := reflect.TypeOf(svc)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		a.services[t] = svc
	}
}

func (a *application) Service(service any) any {
	t := reflect.TypeOf(service)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	svc, ok := a.services[t]
	if !ok {
		panic(fmt.Sprintf("application: service %s is not registered", t))
	}
	return svc
}

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) Controllers() []Controller {
	return a.controllers
}

func (a *application) Migrations() *MigrationRegistry {
	return a.migrations
}

// MigrationRegistry collects the embedded schema filesystems modules register.
type MigrationRegistry struct {
	schemas []schemaSource
}

type schemaSource struct {
	fsys fs.FS
	dir  string
}

// RegisterSchema registers an embedded filesystem and the directory inside it
// holding the module's goose migration files.
func (m *MigrationRegistry) RegisterSchema(fsys fs.FS, dir string) {
	m.schemas = append(m.schemas, schemaSource{fsys: fsys, dir: dir})
}
