// Package pipeline provides a framework for executing migration steps in
// sequence.
//
// The pipeline pattern is used to move a password store through the
// migration stages: environment setup, entry counting, decrypt-and-classify
// processing, CSV export, and run history recording. Each stage is
// implemented as a Step that receives the accumulated report and can
// modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running migrations
//
// Steps run strictly one after another, and entries are decrypted one at
// a time. gpg serializes on the agent socket anyway, and the deterministic
// entry order keeps repeated exports over an unchanged store byte-identical.
package pipeline
