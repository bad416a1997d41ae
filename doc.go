/*
Package novapay is a generic linear wizard engine for the NovaPay banking
flows: Send Money, Loan Apply, Register (with KYC) and Forgot Password.

One controller drives every flow. A flow is a domain.Definition, an ordered
list of steps where each step may carry a validator gating the move forward
and an async action (payment, OTP check, KYC) that must succeed first.

# Concept

The controller is stateless: every operation takes a *domain.State and
returns the next one. The session manager owns shared state, serialises
operations per session and runs async actions outside its lock so that a
second advance is rejected as busy and a cancel can discard a late result.

	Idle ──advance──▶ Validating ──▶ Idle (next step)
	                      │
	                      └──▶ Submitting ──▶ Idle | Complete
	                                  └────▶ Error ──advance──▶ Validating

Going back never drops collected data; only Reset clears the payload.

# Usage

	app, err := novapay.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := app.Sessions.Start(ctx, flows.SendMoney)
	_, _ = app.Sessions.SubmitField(ctx, state.SessionID, "recipient", "Mom")
	state, err = app.Sessions.Advance(ctx, state.SessionID)

Custom flows are built with pkg/dsl and added with WithDefinitions.

# Adapters

Sessions persist in memory, in Redis (pkg/adapters/redis) or as YAML
files (pkg/adapters/file). pkg/adapters/http exposes the sessions over
REST with Server-Sent Events for live updates; cmd/novapay is the CLI.
*/
package novapay
