// Package oauth implements the browser-based OAuth 2.0 authorization
// code flow used by the LinkedIn connector.
//
// # Architecture
//
// The package is composed of small leaves and one orchestrator:
//   - CallbackServer: a transient loopback HTTP listener that captures
//     the single redirect carrying the authorization code.
//   - AuthorizationRequest: the authorization URL builder with a random
//     state nonce.
//   - Client: token exchange and refresh against the provider's token
//     endpoint, with typed transport/rejection errors.
//   - Flow: sequential composition of the above with a bounded wait and
//     state verification on the callback.
//
// Credentials are passed in explicitly through ClientConfig; the package
// reads no ambient environment state and never calls os.Exit. All
// failure modes are typed errors (see errors.go) translated to exit
// codes at the CLI boundary.
//
// # Usage
//
//	client := oauth.NewClient(oauth.ClientConfig{
//	    ClientID:     creds.ClientID,
//	    ClientSecret: creds.ClientSecret,
//	})
//
//	flow := oauth.NewFlow(oauth.FlowConfig{Client: client})
//	token, err := flow.Run(ctx)
package oauth
