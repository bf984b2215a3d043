// Package saferbites is a Go client for the SaferBites search API.
//
//	client, _ := saferbites.New("http://localhost:8080")
//	res, _ := client.Search(ctx, "raw chicken",
//	    saferbites.WithLimit(10),
//	    saferbites.WithEvidence(3),
//	)
//	for _, est := range res.Items {
//	    fmt.Println(est.Name, est.TotalScore)
//	}
package saferbites
