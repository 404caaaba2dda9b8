// Package main hosts the musicfreq CLI entrypoint and command graph.
//
// `musicfreq run` starts the Telegram bot in the foreground. The remaining
// commands are offline helpers: configuration scaffolding, a connectivity
// self-test, a notification test, and `analyze`, which ranks a newline
// separated track log with the same report the bot sends to chats.
//
// Keep this package lean: behaviour lives in the internal packages and the
// commands here only wire them together and render output.
package main
