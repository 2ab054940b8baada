// Package buffer provides a thread-safe, consume-and-purge byte stream.
//
// QueueStream keeps every write as a separate chunk in a FIFO. Reads copy
// bytes off the front of the FIFO and permanently discard them: once a byte
// has been delivered it is gone, and a chunk is released as soon as its last
// byte is read. The stream has no capacity limit and never blocks; a read on
// an empty stream returns zero bytes and a nil error.
//
// QueueStream implements io.Reader, io.Writer, io.StringWriter, io.WriterTo
// and the Seek method of io.Seeker (which always fails), plus the Stream
// capability interface defined in this package.
//
// Example usage:
//
//	var q buffer.QueueStream
//
//	// Producers may write concurrently.
//	q.Write([]byte("hello, "))
//	q.WriteString("world")
//
//	// Read drains bytes in write order.
//	p := make([]byte, 5)
//	n, err := q.Read(p) // n == 5, p == "hello", q.Len() == 7
//
//	// Drain whatever is left.
//	io.Copy(os.Stdout, &q)
package buffer
