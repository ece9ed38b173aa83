// Package linker keeps a work tree connected to its storage tree. Each
// managed project has two symlinks, <project>/.claude pointing at the storage
// directory and <project>/CLAUDE.md pointing at the stored CLAUDE.md, both
// with relative targets. The Synchronizer creates, repairs, removes and
// inspects them; it never writes inside the storage tree.
package linker
