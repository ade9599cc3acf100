package testutil

// PeopleCSV is a small mixed-type table used across handler and service tests.
const PeopleCSV = "Name,Age,Salary,Occupation\n" +
	"Alice,30,50000,Engineer\n" +
	"Bob,45,80000,Manager\n" +
	"Cara,28,42000,Engineer\n" +
	"Dan,52,,Analyst\n" +
	"Eve,39,61000,Manager\n"

// FilterCSV is the three-row table from the salary/age filtering example.
const FilterCSV = "Name,Age,Salary\nA,30,50000\nB,25,60000\nC,40,70000\n"

// WordsText is a short corpus with a predictable frequency ordering.
const WordsText = "the cat and the hat\nthe bat\n"
