// Package fault classifies operation failures for resilience decisions.
//
// Transport layers wrap the errors they produce with an explicit failure
// kind and, for HTTP, the status code. Retry policies and circuit breakers
// then branch on the structured fields instead of parsing error text, so a
// status code appearing in an unrelated message can never change behavior.
//
// Classification walks the error chain with errors.As, and also recognizes
// net.Error timeouts and context.DeadlineExceeded without explicit wrapping:
//
//	err := fault.HTTP("list users", 503, errors.New("service unavailable"))
//	fault.KindOf(err)   // fault.KindHTTP
//	fault.StatusOf(err) // 503, true
package fault
