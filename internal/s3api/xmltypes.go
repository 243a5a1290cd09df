package s3api

import "encoding/xml"

// Owner is the canned owner record returned on every listing and ACL
// response; this emulator has no concept of accounts.
type Owner struct {
	ID          string `xml:"ID"`
	DisplayName string `xml:"DisplayName"`
}

var cannedOwner = Owner{ID: "s3emu", DisplayName: "s3emu"}

type listAllMyBucketsResult struct {
	XMLName xml.Name       `xml:"ListAllMyBucketsResult"`
	Xmlns   string         `xml:"xmlns,attr"`
	Owner   Owner          `xml:"Owner"`
	Buckets bucketListWrap `xml:"Buckets"`
}

type bucketListWrap struct {
	Bucket []bucketEntry `xml:"Bucket"`
}

type bucketEntry struct {
	Name         string `xml:"Name"`
	CreationDate string `xml:"CreationDate"`
}

type contentsEntry struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
	Owner        Owner  `xml:"Owner"`
}

type commonPrefixEntry struct {
	Prefix string `xml:"Prefix"`
}

// listBucketResult renders both v1 and v2 shapes; unused fields are left
// zero and xml:",omitempty" drops them from the wire form.
type listBucketResult struct {
	XMLName        xml.Name            `xml:"ListBucketResult"`
	Xmlns          string              `xml:"xmlns,attr"`
	Name           string              `xml:"Name"`
	Prefix         string              `xml:"Prefix"`
	Marker         string              `xml:"Marker,omitempty"`
	ContinuationToken string           `xml:"ContinuationToken,omitempty"`
	NextContinuationToken string       `xml:"NextContinuationToken,omitempty"`
	NextMarker     string              `xml:"NextMarker,omitempty"`
	KeyCount       int                 `xml:"KeyCount,omitempty"`
	MaxKeys        int                 `xml:"MaxKeys"`
	Delimiter      string              `xml:"Delimiter,omitempty"`
	IsTruncated    bool                `xml:"IsTruncated"`
	Contents       []contentsEntry     `xml:"Contents"`
	CommonPrefixes []commonPrefixEntry `xml:"CommonPrefixes,omitempty"`
}

type copyObjectResult struct {
	XMLName      xml.Name `xml:"CopyObjectResult"`
	ETag         string   `xml:"ETag"`
	LastModified string   `xml:"LastModified"`
}

type deletedEntry struct {
	Key string `xml:"Key"`
}

type deleteErrorEntry struct {
	Key     string `xml:"Key"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

type deleteRequestObject struct {
	Key string `xml:"Key"`
}

type deleteObjectsRequest struct {
	XMLName xml.Name              `xml:"Delete"`
	Quiet   bool                  `xml:"Quiet"`
	Objects []deleteRequestObject `xml:"Object"`
}

type deleteResult struct {
	XMLName xml.Name           `xml:"DeleteResult"`
	Deleted []deletedEntry     `xml:"Deleted"`
	Errors  []deleteErrorEntry `xml:"Error"`
}

type locationConstraint struct {
	XMLName xml.Name `xml:"LocationConstraint"`
	Value   string   `xml:",chardata"`
}

// websiteConfiguration mirrors the upstream GetBucketWebsite/PutBucketWebsite shape.
type websiteConfiguration struct {
	XMLName       xml.Name `xml:"WebsiteConfiguration"`
	Xmlns         string   `xml:"xmlns,attr"`
	IndexDocument *suffixDoc `xml:"IndexDocument,omitempty"`
	ErrorDocument *keyDoc    `xml:"ErrorDocument,omitempty"`
}

type suffixDoc struct {
	Suffix string `xml:"Suffix"`
}

type keyDoc struct {
	Key string `xml:"Key"`
}

// cannedACL is the fixed ACL document returned for any GetBucketAcl or
// GetObjectAcl request; ACL mutation is not implemented.
type cannedACLDoc struct {
	XMLName           xml.Name       `xml:"AccessControlPolicy"`
	Xmlns             string         `xml:"xmlns,attr"`
	Owner             Owner          `xml:"Owner"`
	AccessControlList accessControlList `xml:"AccessControlList"`
}

type accessControlList struct {
	Grant []grant `xml:"Grant"`
}

type grant struct {
	Grantee    granteeRef `xml:"Grantee"`
	Permission string     `xml:"Permission"`
}

type granteeRef struct {
	XMLNSXsi string `xml:"xmlns:xsi,attr"`
	Type     string `xml:"xsi:type,attr"`
	ID       string `xml:"ID"`
	DisplayName string `xml:"DisplayName"`
}

func cannedACL() cannedACLDoc {
	return cannedACLDoc{
		Xmlns: "http://s3.amazonaws.com/doc/2006-03-01/",
		Owner: cannedOwner,
		AccessControlList: accessControlList{
			Grant: []grant{{
				Grantee: granteeRef{
					XMLNSXsi:    "http://www.w3.org/2001/XMLSchema-instance",
					Type:        "CanonicalUser",
					ID:          cannedOwner.ID,
					DisplayName: cannedOwner.DisplayName,
				},
				Permission: "FULL_CONTROL",
			}},
		},
	}
}

const xmlNamespace = "http://s3.amazonaws.com/doc/2006-03-01/"
