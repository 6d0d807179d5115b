// Package graph defines the design graph produced by evaluating a geotrait
// script: named polynomial curves and surfaces, and probes that record the
// value of a contract operation at a parameter.
//
// Node payloads hold coefficients, never evaluated geometry, so a graph can
// be rebuilt into primitives any number of times.
package graph
