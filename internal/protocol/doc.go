// Package protocol implements the echoline wire protocol.
//
// The protocol is text based and newline delimited. Every line a client
// sends is answered with the same line, with two reserved forms:
//
//   - an empty line asks the server to close that connection, without a
//     response;
//   - the literal line "STOP" asks the server to close that connection and
//     shut the whole service down, without a response.
//
// Any other line is echoed back unchanged, followed by a line terminator.
//
// # Line framing
//
// Lines are terminated by '\n'. A terminating "\r\n" is accepted and
// stripped, so interactive tools like telnet and nc work out of the box.
// Responses are always terminated with a single '\n'.
//
// # Usage
//
//	pc := protocol.NewConn(conn)
//	defer func() { _ = pc.Close() }()
//
//	line, err := pc.ReadLine()
//	if err != nil {
//	    return err
//	}
//	switch protocol.Classify(line) {
//	case protocol.ActionEcho:
//	    err = pc.WriteLine(line)
//	case protocol.ActionClose:
//	    // hang up, no response
//	case protocol.ActionShutdown:
//	    // hang up and initiate service shutdown
//	}
//
// Both the server and the client use Conn, so framing lives in exactly one
// place.
package protocol
