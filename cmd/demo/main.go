// Command demo builds an indexed Merkle tree, runs a scripted sequence of
// single and batch insertions, and prints roots and proof verdicts to the
// console.
package main

import (
	"fmt"
	"log"

	"github.com/nullset-labs/imt/pkg/field"
	"github.com/nullset-labs/imt/pkg/hash"
	"github.com/nullset-labs/imt/pkg/imt"
)

func main() {
	tree := imt.New(hash.Poseidon2Pair{}, true)
	if err := tree.Init(32); err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Indexed Merkle Tree Demo ===")
	fmt.Printf("- Depth: %d\n", tree.Depth())
	fmt.Printf("- Initial root: 0x%x\n", field.ToCanonicalBytes(tree.Root()))

	fmt.Println("\n=== Single inserts ===")
	for _, k := range []int64{30, 10, 20, 5} {
		ip, err := tree.Insert(field.New(k), field.New(k*100))
		if err != nil {
			log.Fatalf("insert %d: %v", k, err)
		}
		fmt.Printf("- inserted key=%-4d root=0x%x insertion proof verifies=%v\n",
			k, field.ToCanonicalBytes(tree.Root()), imt.VerifyInsertionProof(tree, ip))
	}

	fmt.Println("\n=== Membership & exclusion proofs ===")
	for _, k := range []int64{10, 20} {
		p, err := tree.Prove(field.New(k))
		if err != nil {
			log.Fatalf("prove %d: %v", k, err)
		}
		fmt.Printf("- membership(%d) verifies=%v\n", k, imt.VerifyProof(tree, p))
	}
	if p, err := tree.ProveExclusion(field.New(15)); err != nil {
		log.Fatalf("prove exclusion 15: %v", err)
	} else {
		fmt.Printf("- exclusion(15), predecessor=%s, verifies=%v\n", p.Leaf.Key, imt.VerifyProof(tree, p))
	}

	fmt.Println("\n=== Batch insert ===")
	items := []imt.Item{
		{Key: field.New(100), Value: field.New(1)},
		{Key: field.New(50), Value: field.New(2)},
		{Key: field.New(75), Value: field.New(3)},
	}
	bp, err := tree.InsertBatch(items)
	if err != nil {
		log.Fatalf("insert batch: %v", err)
	}
	fmt.Printf("- batch of %d landed, root=0x%x, batch proof verifies=%v\n",
		len(items), field.ToCanonicalBytes(tree.Root()), imt.VerifyBatchInsertionProof(tree, bp))

	fmt.Printf("\nFinal leaf count: %d\n", tree.NumOfLeaves())
}
