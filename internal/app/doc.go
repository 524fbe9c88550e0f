// Package app contains the application logic behind the agpconf command. It
// loads build scripts, resolves their variants concurrently and renders the
// result, decoupled from any specific entrypoint like a CLI.
package app
