// Package tsdb provides the HTTP transport to an InfluxDB 1.x compatible
// time-series database.
//
// It writes line protocol with POST /write and runs InfluxQL with
// GET /query, both scoped to one database.
//
// # Usage
//
//	client, err := tsdb.New(config.TSDBConfig{
//	    URL:      "http://localhost:8086/",
//	    Database: "my_database",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.Write(ctx, []byte("cpu,host=a value=0.64 1434055562000000000\n"))
//	resp, err := client.Query(ctx, `SELECT "value" FROM "cpu"`)
//
// # Error Handling
//
// Every failure is exactly one of:
//   - ErrTransport: no complete response (connection refused, timeout, cancelled)
//   - *RejectedError (errors.Is ErrRejected): non-success status with an error message
//   - ErrDecode: a body that could not be decoded
//
// Statement-level errors inside a successful query response are returned
// as data in QueryResult.Error.
//
// # Thread Safety
//
// A Client is immutable after New and safe for concurrent use. WriteAsync
// and QueryAsync start the request immediately and return a pipeline.Future.
package tsdb
