// Package services holds the application core of sercha-rag: the document
// collection and its BM25 and hybrid search, the planner, judge and
// synthesiser agents, the answer loop that drives them, and settings.
//
// Every service depends only on domain types and driven ports, so tests
// swap in hand-written fakes for the LLM, stores and semantic index.
package services
