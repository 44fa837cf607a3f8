/*
Copyright 2025 The Rudder Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package s3

import (
	"bytes"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const DefaultRegion = "us-east-1"

type Client struct {
	*s3.S3
}

func NewClient(endpoint, ak, sk, region string, insecure bool) (*Client, error) {
	creds := credentials.NewStaticCredentials(ak, sk, "")
	config := &aws.Config{
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      creds,
		DisableSSL:       aws.Bool(insecure),
	}
	if region != "" {
		config.Region = aws.String(region)
	} else {
		config.Region = aws.String(DefaultRegion)
	}
	session, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}
	return &Client{s3.New(session)}, nil
}

// ValidateBucket checks the existence of bucket.
func (c *Client) ValidateBucket(bucketName string) error {
	headBucketInput := &s3.HeadBucketInput{Bucket: aws.String(bucketName)}
	_, err := c.HeadBucket(headBucketInput)
	if err != nil {
		return fmt.Errorf("validate S3 error: %s", err.Error())
	}

	return nil
}

// Exists reports whether the object is present in the bucket.
func (c *Client) Exists(bucketName, objectKey string) (bool, error) {
	opt := &s3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}
	if _, err := c.HeadObject(opt); err != nil {
		if e, ok := err.(awserr.RequestFailure); ok && e.StatusCode() == 404 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Upload stores the payload under objectKey.
func (c *Client) Upload(bucketName, objectKey string, payload []byte) error {
	opt := &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(payload),
	}
	_, err := c.PutObject(opt)

	return err
}

// Download writes the object's payload to dest. The boolean result reports
// whether the object existed.
func (c *Client) Download(bucketName, objectKey string, dest io.Writer) (bool, error) {
	opt := &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}
	obj, err := c.GetObject(opt)
	if err != nil {
		if e, ok := err.(awserr.Error); ok && e.Code() == s3.ErrCodeNoSuchKey {
			return false, nil
		}
		return false, err
	}
	defer obj.Body.Close()

	if _, err := io.Copy(dest, obj.Body); err != nil {
		return true, err
	}
	return true, nil
}

// ListPrefix returns the object keys below prefix.
func (c *Client) ListPrefix(bucketName, prefix string) ([]string, error) {
	input := &s3.ListObjectsInput{
		Bucket:    aws.String(bucketName),
		Delimiter: aws.String(""),
		Prefix:    aws.String(prefix),
	}
	objects, err := c.ListObjects(input)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(objects.Contents))
	for _, object := range objects.Contents {
		keys = append(keys, *object.Key)
	}
	return keys, nil
}
