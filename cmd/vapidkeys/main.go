// Command vapidkeys prints a fresh VAPID key pair for browser push notifications.
package main

import (
	"fmt"
	"log"

	"socialfeed/push"
)

func main() {
	publicKey, privateKey, err := push.GenerateKeys()
	if err != nil {
		log.Fatal("Failed to generate VAPID keys:", err)
	}

	fmt.Println("========================================")
	fmt.Println("VAPID PUBLIC KEY:")
	fmt.Println(publicKey)
	fmt.Println()
	fmt.Println("VAPID PRIVATE KEY:")
	fmt.Println(privateKey)
	fmt.Println("========================================")
	fmt.Println("Add these to your .env file:")
	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
	fmt.Println("VAPID_SUBSCRIBER=mailto:you@example.com")
}
