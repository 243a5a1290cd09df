package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

// newPresignCmd builds a client-side helper for developers verifying
// presigned-URL compatibility against a running emulator. s3emu itself
// never verifies signatures; this only exercises the SDK's presign client.
func newPresignCmd() *cobra.Command {
	var endpoint string
	var expires time.Duration

	cmd := &cobra.Command{
		Use:   "presign <bucket> <key>",
		Short: "Print a presigned GET URL for an object on a running emulator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, key := args[0], args[1]

			awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context(),
				awsconfig.WithRegion("us-east-1"),
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
				awsconfig.WithBaseEndpoint(endpoint),
			)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}

			client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
				o.UsePathStyle = true
			})
			presigner := s3.NewPresignClient(client, s3.WithPresignExpires(expires))

			req, err := presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return fmt.Errorf("presign: %w", err)
			}

			fmt.Println(req.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:9000", "Base URL of a running emulator")
	cmd.Flags().DurationVar(&expires, "expires", 15*time.Minute, "Presigned URL lifetime")

	return cmd
}
