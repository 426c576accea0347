// Package processor is the per-invocation processing environment.
//
// An Environment binds together everything one compiler invocation needs:
// the option lookup (invocation options, then a mixin.properties fallback),
// the constraint token cache, the type lookup of the front end, the
// obfuscation manager, the target map of the session and the mixin registry.
// It implements the host contract the registry and its handlers run against.
//
// Environments are obtained from a Registry keyed by invocation, created on
// first use and reused until disposed:
//
//	env, err := reg.Environment(ctx, key, processor.Config{Index: idx})
//	if err != nil {
//		return err
//	}
//	defer reg.Dispose(key)
//
//	env.RunPass(ctx, idx)
//	env.WriteMappings(ctx)
package processor
