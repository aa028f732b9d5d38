// Package pareto holds the dominance relation and the two sets the
// enumeration driver prunes with: the non-dominated archive N and the
// infeasibility memo I.
//
// All comparisons are in maximize-form. Neither type is safe for concurrent
// use; an enumeration run owns its archive and memo exclusively.
package pareto
