// Package sema is the expression type engine. It types every expression
// region (fn, gn and memo bodies, keyed parameter defaults) in its own
// session over a hollow.Region, records how each syntactic form was
// disambiguated and tags every failure as Original or Derived.
//
// Sessions never share their hollow region. The Engine memoizes one
// RegionResult per region and is safe for concurrent use across regions.
package sema
