// Package logs reads the bot's log file for `musicfreq logs`.
//
// Last reads the final N lines with bounded memory and returns the offset
// where following should resume. Follow polls from an offset and hands each
// new line to a callback until the context ends. A missing file is treated
// as empty so the command works before the bot has written anything.
package logs
