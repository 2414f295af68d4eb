// package tasks implements long-running catalog operations.
//
// The core abstraction is [CacheEngine], which warms the offline movie cache
// from the backend's feeds. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks
