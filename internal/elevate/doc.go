// Package elevate routes resource mutations through an elevated identity.
//
// Direct OS API calls only affect the current token, so tweaks flagged as
// requiring elevation express their writes as reg.exe, sc.exe, and
// schtasks.exe command lines executed through a [Runner]. Reads always go
// through the direct accessors; only mutation needs the privileged
// identity, and both paths must produce observably identical end states.
//
// The elevation vehicle itself (how a command line comes to run with a
// privileged token) stays behind the Runner interface. [Shell] is the
// default implementation, optionally prefixing a wrapper helper.
package elevate
