// Package gitrepo opens git working directories with go-git.
//
// Repository answers local questions (current branch, working tree status,
// position relative to the upstream) without spawning processes, and runs
// fetch, pull, and push through an execshell-backed git executor so that
// user credentials and transport configuration behave exactly like git.
package gitrepo
