// Package domain holds the types every other layer speaks: documents and
// their chunks, search hits and evidence, what the planner, judge and
// synthesiser return each round, the audit record of an answered
// question, and the progress events streamed while it is answered.
//
// It imports only the standard library. Nothing in internal/ is imported
// here; everything else imports domain.
package domain
