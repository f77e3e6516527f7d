// Package client provides a line-oriented TCP client for the echo service.
//
// The client wraps a single connection and exposes the protocol's three
// interactions: Send for ordinary lines (which returns the echo), SendRaw
// for lines that get no response, and Stop for the STOP command that shuts
// the whole service down.
//
// # Usage Example
//
//	c, err := client.Dial("192.168.1.100:5432", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	echo, err := c.Send("hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(echo)
//
// A Client is not safe for concurrent use; each goroutine should dial its
// own connection.
package client
