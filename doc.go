// cardstore offers a small data access layer over AWS DynamoDB for business card records
//
// Each record is keyed by its package identifier, a global secondary index on the business name and received date
// pair is used to look up records at creation time. By default the pair is reserved with a marker item written in
// the same transaction as the record, so two records can never share a business name and received date.
//
// To setup a session, configure a table and store a record.
//
//     session := cardstore.New()
//     tbl := session.Table("PackageScan")
//
//     created, err := tbl.Store(&cardstore.Record{
//         BusinessName: "Acme",
//         ReceivedDate: "2024-01-02",
//         UserID:       "user-123",
//     })
//     if err != nil {
//         log.Fatalf("failed to store: %s", err)
//     }
//     if !created {
//         log.Printf("a card for Acme was already received on 2024-01-02")
//     }
//
package cardstore
