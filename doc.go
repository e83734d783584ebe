/*
Package primecount implements a parallel, adaptively load-balanced engine for
counting prime integers in a large line-oriented text file. Each line holds
one decimal integer; the file is split into byte-range tasks, dispatched to a
pool of workers, and the per-worker throughput feeds back into the size of
future tasks.

See primecount/cmd/primecount for the command line frontend.
*/
package primecount
