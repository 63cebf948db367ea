// Package capsule is a client for CapsuleCRM cases.
//
// A Case is built in memory by a CaseService and saves itself through a
// Gateway: new cases are POSTed under their party, persisted ones are PUT,
// and Destroy issues a DELETE. Validation runs locally before any request.
//
//	svc, err := capsule.NewClient(capsule.LoadConfig())
//	if err != nil {
//		return err
//	}
//	c, err := svc.CreateStrict(ctx, capsule.Attributes{
//		Name:    capsule.String("Renewal"),
//		PartyID: models.NewID(7),
//	})
package capsule
