// Package aws wraps the AWS service clients the deployer needs: IAM for
// the autoscaler policy and its role attachments, Auto Scaling for the
// discovery tags, and EKS for resolving a cluster's managed node groups.
package aws
