/*

Process of compilation

Source Text ->
	lex ->
Tokens ->
	parse ->
Source Tree (ast) ->
	lower ->
TACKY (tacky) ->
	codegen ->
Assembly Tree (asmtree) ->
	emit ->
Assembly Text ->
	assemble+link (external) ->
Executable

*/
package compiler
