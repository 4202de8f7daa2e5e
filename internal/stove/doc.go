// Package stove implements the HTTP CGI client protocol used by pellet
// stove controllers.
//
// The controllers expose a single CGI endpoint (commonly
// /recepcion_datos_4.cgi) that accepts POST form data. Every command is a
// numeric operation sent as idOperacion=<int>, optionally with extra form
// fields, and the firmware answers with a loosely formatted text/plain body
// of newline-separated key=value lines:
//
//	idOperacion=1094
//	error=0
//	int_rx=1767225600
//
// # Error taxonomy
//
// Failures surface as exactly one of three mutually exclusive kinds:
//
//   - Transport: connection refused, timeout, DNS failure, auth rejection
//     (401/403) or any other non-2xx status. Retried up to the configured
//     bound with a fixed delay, then surfaced with the final cause.
//   - Protocol: the body was empty or contained no parseable key=value
//     line, or the caller's input never reached the network. Never retried.
//   - Operation: the device answered coherently but reported a non-zero
//     error code. Never retried; the code is surfaced verbatim.
//
// The retry asymmetry is deliberate: a flaky network deserves another try,
// a device that said "no" does not.
//
// # Usage
//
//	client, err := stove.NewClient("http://192.168.1.50",
//	    stove.WithBasicAuth("user", "secret"),
//	    stove.WithRetries(2),
//	)
//	if err != nil {
//	    return err
//	}
//	resp, err := client.SendOperation(ctx, 1002)
//	if stove.IsOperation(err) {
//	    code, _ := stove.OperationCode(err)
//	    // device rejected the command with code
//	}
//
// # Concurrency
//
// A Client assumes at most one in-flight call at a time. The session
// cookie jar is internally synchronized, so concurrent calls will not
// corrupt it, but their ordering is undefined; serialize calls externally
// when ordering matters.
package stove
