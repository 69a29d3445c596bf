// Package matomo is a client SDK for the Matomo HTTP tracking API.
//
// A Client is bound to one site and one tracker endpoint at construction
// and is safe for concurrent use:
//
//	client, err := matomo.New(1, "https://stats.example.com/matomo.php")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = client.Track(ctx, matomo.Params{
//	    URL:        "https://mywebsite.com/pricing",
//	    ActionName: "Pricing",
//	})
//
// Single requests go out as GETs with a percent-encoded query string;
// TrackBulk batches many requests into one JSON-wrapped POST. Argument
// errors are returned before any I/O, delivery failures (transport errors,
// non-2xx statuses) are returned as errors of kind delivery and also
// broadcast to handlers registered with OnDeliveryError.
package matomo
