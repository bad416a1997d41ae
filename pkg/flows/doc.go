// Package flows defines the NovaPay wizards: send-money, loan-apply,
// register and forgot-password, plus the calculators they display.
//
// Every flow is a plain *domain.Definition built with pkg/dsl; async steps
// call simulated backends whose latency and mock credentials come from
// Options.
package flows
