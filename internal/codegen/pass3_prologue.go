package codegen

import "github.com/cmmc/cmmc/internal/asmtree"

// prependStackAllocation implements pass 3 of spec.md §4.4: prepend
// AllocateStack{bytes} to the function's instruction list.
func prependStackAllocation(in []asmtree.Instr, bytes int) []asmtree.Instr {
	out := make([]asmtree.Instr, 0, len(in)+1)
	out = append(out, asmtree.AllocateStack{Bytes: bytes})
	out = append(out, in...)

	return out
}
