// Package journal records batches the loader failed to deliver.
//
// The journal is a dead-letter table on SQLite. Each entry keeps the exact
// payload that was sent, the transport and target it was sent to, and the
// error returned, so an operator can inspect or replay it later.
//
//	store := journal.NewStore(db.DB)
//	id, err := store.Record(ctx, journal.Entry{
//	    Transport: "http",
//	    Target:    client.WriteURL(),
//	    Payload:   payload,
//	    Error:     err.Error(),
//	})
//
// The line protocol packages never write to the journal themselves.
package journal
