// Package canonical defines the shared movie record schema and the
// normalizer that maps heterogeneous provider rows onto it.
//
// Every provider ships its own column names; the normalizer consults a
// static alias table so a new provider usually only needs a table edit,
// not new code. A normalized record always carries a non-empty title,
// and any field the normalizer cannot populate is omitted entirely so
// the presence of a key implies a known value.
package canonical
