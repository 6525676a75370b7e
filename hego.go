/*
Package hego is a pure Go implementation of the BFV homomorphic
encryption scheme over RNS polynomial rings: modular and polynomial
arithmetic, number-theoretic transforms, RNS basis conversion, key
generation and key switching, SIMD plaintext encoding and a compact
wire format for ciphertexts and plaintexts.
*/
package hego
