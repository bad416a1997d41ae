/*
Package dsl provides a fluent builder for NovaPay wizard definitions.

It lets each flow declare its ordered steps, guards and async actions in
plain Go, type-checked and close to the code that implements them, instead
of wiring domain.StepSpec literals by hand.

Example usage:

	package main

	import (
		"github.com/aretw0/novapay/pkg/dsl"
	)

	func main() {
		b := dsl.New("send-money")

		b.Step("recipient").
			Label("Recipient").
			Field("recipient", "Who are you sending money to?").
			Validate(requireRecipient)

		b.Step("review").
			Label("Review").
			Secret("mpin", "Enter your 6-digit MPIN").
			Async(processPayment)

		b.Step("success").
			Label("Success").
			Terminal()

		def, err := b.Build()
		// ... pass def to runtime.NewEngine(def)
	}
*/
package dsl
