// Package config loads and stores user settings for the netflame CLI.
//
// Settings live in a YAML file at the platform configuration directory
// (e.g. ~/.config/netflame/config.yaml on Linux). Every setting has a
// command-line flag counterpart; flags take precedence over the file.
// Writes are atomic so a crash cannot leave a half-written file behind.
package config
