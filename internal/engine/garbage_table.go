package engine

// GarbageTable maps cleared lines to garbage rows. Clears past the end of the table use the last entry.
var GarbageTable = []int{
	0, // 0 lines
	0, // single
	1, // double
	2, // triple
	4, // four or more
}
