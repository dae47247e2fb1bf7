// Package device models the compute devices a deployment exposes and the
// process-wide resolution cell that node handlers consult when deciding
// where newly created tensors should live.
//
// The resolution cell is a single shared mutable value, matching the one
// global override point the wrapped node implementations were written
// against. Override installs a replacement resolver and hands back a
// restore function that puts the exact previous value back; it is the
// caller's job to guarantee restore runs on every exit path. The cell is
// process-wide, not goroutine-scoped, so overlapping Override windows
// clobber each other. See package pin for how that hazard is managed.
package device
