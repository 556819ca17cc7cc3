// Package mcp exposes the cart simulation to AI agents over the Model Context
// Protocol.
//
// The client is thin: every tool call is translated into a request against
// the REST API and the JSON answer is rendered as text for the agent.
//
// Tools:
//   - create_session, list_sessions, get_session: session management
//   - sim_state: current tick, carts and rendered track
//   - tick, run, reset_sim: advance or restore a simulation
//   - report: first collision and last cart
//   - describe_cell: tile and carts at one cell
//   - solve_layout: stateless solve of a raw map
//   - list_configs, sim_instructions: tracks and rules
//
// Transport Modes:
//
// The server returned by GetMCPServer can be served over stdio with
// server.ServeStdio, or mounted on an HTTP endpoint that forwards request
// bodies to HandleMessage.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
