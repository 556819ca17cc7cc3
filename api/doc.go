// Package api provides the REST API for the cart simulation.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions              create a session ({"config_id": "classic"})
//   - GET    /api/sessions              list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}         session details
//   - DELETE /api/sessions/{id}         delete a session
//
// Simulation:
//   - GET    /api/sessions/{id}/state   current snapshot
//   - POST   /api/sessions/{id}/tick    advance ({"count": N}, default 1)
//   - POST   /api/sessions/{id}/run     run until at most one cart is left
//   - POST   /api/sessions/{id}/reset   restore the initial carts
//   - GET    /api/sessions/{id}/report  first collision and last cart
//   - GET    /api/sessions/{id}/cell    tile and carts at ?x=&y=
//   - POST   /api/solve                 solve a posted layout without a session
//
// Configuration:
//   - GET    /api/configs               list tracks
//   - POST   /api/configs               save a track ({"config_id": ..., "name": ..., "layout": [...]})
//   - GET    /api/configs/{name}        one track
//   - PUT    /api/configs/{name}        save or replace a track
//
// Other:
//   - GET    /ws?session={id}           websocket updates for a session
//   - GET    /health                    liveness
//   - GET    /metrics                   Prometheus metrics, when enabled
//
// Errors are returned as {"error": "..."}. Missing sessions and configs are
// 404, finished runs 409, rejected tracks and exhausted tick budgets 422.
package api
