// Package delivery sends frames to the bus with bounded retries and payload
// shape negotiation.
//
// The bus has accepted two envelope contracts across deployments: the bare
// frame object, and the frame wrapped as {"frame": <frame>}. Rather than
// pinning one, every attempt tries an ordered list of shapes and succeeds on
// the first the bus accepts. An attempt fails only when every shape fails.
//
// Between failed attempts the Sender waits a backoff delay. The default is a
// fixed 500ms interval with no jitter; BackoffConfig can turn on capped
// exponential growth and jitter. After MaxAttempts failed attempts Send
// returns *ExhaustedError carrying the last underlying failure.
//
// Individual shape and attempt failures are logged, never returned. A frame
// is either delivered once or not at all.
package delivery
