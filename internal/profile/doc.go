// Package profile exports applied tweaks to a portable TOML file and
// replays such files on another machine through the normal apply path.
package profile
