// Package calendar provides a client for creating events through the Google
// Calendar REST API.
//
// The client authenticates with an API key and talks to a single calendar
// configured at startup. It offers two write operations:
//
//   - CreateEvent forwards a fully specified event.
//   - AddEvent derives a one-hour window from a start time and delegates to
//     CreateEvent.
//
// Listing events is not implemented and returns ErrNotImplemented.
//
// Example usage:
//
//	cfg := calendar.DefaultConfig()
//	cfg.APIKey = os.Getenv(calendar.EnvAPIKey)
//
//	client, err := calendar.NewClient(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	created, err := client.AddEvent(ctx, "Meeting", "2023-12-25T10:00:00+09:00")
//	if err != nil {
//	    var upstream *calendar.UpstreamError
//	    if errors.As(err, &upstream) {
//	        log.Printf("calendar API rejected the event: %s", upstream.Body)
//	    }
//	    return err
//	}
//	fmt.Println(calendar.ConfirmationMessage(created))
package calendar
