package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or invalid config file)
	ExitDataError   = 3 // Dataset could not be loaded from any candidate path
	ExitEmptyResult = 4 // The selection matched no data; a message scene was written
)
