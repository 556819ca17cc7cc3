// Package service provides the business logic layer of the mine cart
// simulator.
//
// SimulationService is the single entry point used by every transport. It
// resolves track configs, creates sessions, steps their simulations and
// reports results. SessionManager and ConfigManager are the storage
// interfaces it depends on; game/session and game/config implement them.
//
// The service holds one mutex. Ticks, runs and resets take it exclusively, so
// two requests never interleave the ticks of a simulation. Reads take it
// shared.
//
// Usage:
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager("configs")
//	svc := service.NewSimulationService(sessions, configs,
//		service.WithLogger(logger),
//		service.WithObserver(metrics),
//	)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	resp, err := svc.Tick(ctx, info.ID, 10)
//	run, err := svc.Run(ctx, info.ID)
//	fmt.Println(run.Report.FormatFirstCollision(), run.Report.FormatSurvivor())
//
// Observer receives tick counts, collision counts, run outcomes and the
// number of active sessions. internal/metrics exports them to Prometheus.
package service
