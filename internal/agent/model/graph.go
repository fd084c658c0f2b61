package model

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Each request gets its own instance; nothing is shared between requests.
type AppState struct {
	Request    IncomingRequest // set by the enricher pre-handler, read by the assembler
	SearchInfo SearchInfo      // set by the enricher post-handler, read by the responder
}
