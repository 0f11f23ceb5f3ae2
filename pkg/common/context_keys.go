package common

// SemaphoreLocalKey carries the acquired connection slot from the websocket
// middleware to the handler that releases it.
const SemaphoreLocalKey = "ws_semaphore"
