// Package output owns the file-system side of chart synthesis.
//
//   - Writers (writer.go): the [Writer] interface with [StreamWriter] and
//     [FileWriter], which replaces files atomically and skips unchanged ones.
//
//   - Trees (tree.go): directory removal, pruning, recursive copy, and the
//     single-level template copy used when sub-charts are inlined.
package output
