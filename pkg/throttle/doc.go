// Package throttle manages named throttling policies.
//
// A Manager builds one independent rate gate per configured policy and
// exposes admission by policy name, with structured logging and optional
// Prometheus instrumentation layered on top of the core gates:
//
//	mgr, err := throttle.NewManager(cfg.Policies, logger, collector)
//	if err != nil {
//	    return err
//	}
//
//	if err := mgr.Wait(ctx, "search-api"); err != nil {
//	    return err // cancelled or timed out before admission
//	}
//	callSearchAPI()
//
// Gates never share state: saturating one policy has no effect on any
// other. Reconfigure swaps policies at runtime (typically driven by a
// config.Watcher) while preserving the admission window of policies whose
// settings did not change.
package throttle
