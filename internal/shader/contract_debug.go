//go:build nuanceurdebug

package shader

const fatalContracts = true
