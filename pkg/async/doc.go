// Package async runs independent calls concurrently and collects every
// outcome. The calendar aggregator uses it to query all connected providers
// at once, each under its own timeout, without letting one failure cancel
// the others.
//
//	futs := []*async.Future[[]Event]{
//		async.Go(ctx, 15*time.Second, fetchGoogle),
//		async.Go(ctx, 15*time.Second, fetchOutlook),
//	}
//	for _, r := range async.Settle(futs...) {
//		// r.Value, r.Err
//	}
package async
