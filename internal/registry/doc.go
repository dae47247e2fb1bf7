// Package registry is the central glue between node type names and the
// compiled Go handlers that implement them.
//
// The host discovers node types exclusively by string name: a grid file's
// `step "video_load" "a"` block is dispatched to whatever handler was
// registered under "video_load". Modules register their handlers during
// application startup; registering the same name twice is a programmer
// error and panics. The pinned wrapper variants in package pin register
// through the same mechanism, which is what lets them declare themselves
// only when the node they wrap is actually present in the deployment.
package registry
