// Command seed-users loads login accounts into the DynamoDB credential table
// read by the inventory-service when AUTH_STORE=dynamo.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	ddbpkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/dynamodb"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/auth"
)

func main() {
	var users, table string
	var cost int
	flag.StringVar(&users, "users", os.Getenv("AUTH_USERS"), "accounts as user:password:role,...")
	flag.StringVar(&table, "table", os.Getenv("DDB_TABLE_USERS"), "DynamoDB table name")
	flag.IntVar(&cost, "cost", 0, "bcrypt cost (0 selects the default)")
	flag.Parse()

	if table == "" {
		table = "InventoryUsers"
	}
	seed, err := auth.ParseSeedUsers(users)
	if err != nil {
		log.Fatalf("parse users: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	if err := auth.SeedDynamo(ctx, ddbpkg.NewClientFromConfig(awsCfg), table, seed, cost); err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("Seeding complete. table=%s users=%d\n", table, len(seed))
}
