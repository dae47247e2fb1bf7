// Package pin executes node handlers with every device-resolution query
// and every tensor input and output pinned to one caller-chosen device.
//
// A pinned execution follows a fixed order: validate the target device,
// relocate tensor-shaped arguments onto it, install a fixed resolver in the
// process-wide cell, invoke the delegate handler, relocate every tensor
// leaf of the result, restore the saved resolver. Restoration runs on every
// exit path, including a delegate failure, and delegate errors propagate
// unchanged.
//
// Known hazard: the resolution cell in package device is process-wide, not
// scoped to a goroutine or call. Two overlapping pinned executions race —
// the later override wins the shared window, so the earlier execution's
// tensors can land on the later execution's target, and each restore
// reinstates whatever it saw at override time. The host executor runs
// steps one at a time, which keeps a single process out of that window;
// embedders that run handlers concurrently inherit the hazard. The wrapped
// node implementations were written against exactly one global override
// point, so making this cell call-scoped would change what concurrent
// callers observe and is deliberately not done here.
package pin
