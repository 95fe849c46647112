/*
Package selection resolves the host's current selection into the ordered set of text
elements a fill will write to.

Resolution never fails: an unreachable selection, an odd value shape or a node that
panics while being probed all shrink the result instead of aborting it. An empty result
is a normal outcome that the orchestrator turns into a "please select" prompt.
*/
package selection
