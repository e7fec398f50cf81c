package service

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
)

/*
RPCServer bundles a registry-backed dispatcher into a fiber app: POST
/rpc for dispatch, GET / for liveness, GET /.well-known/rpc.json for the
service descriptor, with the standard request logger and healthcheck
middleware in front. Safe for concurrent use because Dispatcher and a
sealed Registry are.
*/
type RPCServer struct {
	app        *fiber.App
	registry   *registry.Registry
	dispatcher *jsonrpc.Dispatcher
	name       string
	version    string
}

/*
Descriptor is what /.well-known/rpc.json serves: enough for a client to
discover the method surface before making calls.
*/
type Descriptor struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Methods []string `json:"methods"`
}

/*
NewRPCServer constructs a server over a fully populated registry. The
registry must not be mutated afterwards; dispatch reads it unlocked.
*/
func NewRPCServer(name, version string, reg *registry.Registry, opts ...jsonrpc.Option) *RPCServer {
	srv := &RPCServer{
		app: fiber.New(fiber.Config{
			AppName:      name,
			ServerHeader: "JSONRPC-Server",
		}),
		registry:   reg,
		dispatcher: jsonrpc.NewDispatcher(reg, opts...),
		name:       name,
		version:    version,
	}

	srv.app.Use(logger.New())
	srv.app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	srv.app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	srv.app.Get(healthcheck.StartupEndpoint, healthcheck.New())
	srv.app.Get("/", srv.handleRoot)
	srv.app.Get("/.well-known/rpc.json", srv.handleDescriptor)
	srv.app.Post("/rpc", srv.handleRPC)

	return srv
}

// Dispatcher exposes the underlying dispatcher so other transports can
// share it.
func (srv *RPCServer) Dispatcher() *jsonrpc.Dispatcher {
	return srv.dispatcher
}

// Start blocks serving on addr until Shutdown is called.
func (srv *RPCServer) Start(addr string) error {
	log.Info("rpc server listening", "addr", addr, "methods", len(srv.registry.Names()))

	return srv.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown drains in-flight requests and stops the listener.
func (srv *RPCServer) Shutdown(ctx context.Context) error {
	return srv.app.ShutdownWithContext(ctx)
}

func (srv *RPCServer) handleRoot(ctx fiber.Ctx) error {
	return ctx.SendString("OK")
}

func (srv *RPCServer) handleDescriptor(ctx fiber.Ctx) error {
	return ctx.JSON(Descriptor{
		Name:    srv.name,
		Version: srv.version,
		Methods: srv.registry.Names(),
	})
}

func (srv *RPCServer) handleRPC(ctx fiber.Ctx) error {
	reply := srv.dispatcher.Dispatch(ctx.Context(), ctx.Body())

	// Notifications only – no body is owed back.
	if reply == nil {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	ctx.Set("Content-Type", "application/json")
	return ctx.Send(reply)
}
